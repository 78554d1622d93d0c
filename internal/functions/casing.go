package functions

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// titleCase, upperCase: locale-aware casing transformers (spec §4.9).
// titleCase(s, locale?) / upperCase(s, locale?) default to the runtime's
// configured locale, matching textEquals/textBefore's convention.
func titleCase(fc *evaluator.FunctionContext, args []any) (any, error) {
	s, err := argString("titleCase", args, 0)
	if err != nil {
		return nil, err
	}
	return cases.Title(localeFor(fc, args, 1)).String(s), nil
}

func upperCase(fc *evaluator.FunctionContext, args []any) (any, error) {
	s, err := argString("upperCase", args, 0)
	if err != nil {
		return nil, err
	}
	return cases.Upper(localeFor(fc, args, 1)).String(s), nil
}

// normalize: Unicode NFC normalization transformer (spec §4.9), applied
// before validation/comparison the way the teacher's string builtins
// normalize advanced string operations ahead of length/equality checks.
func normalize(_ *evaluator.FunctionContext, args []any) (any, error) {
	s, err := argString("normalize", args, 0)
	if err != nil {
		return nil, err
	}
	return norm.NFC.String(s), nil
}

func localeFor(fc *evaluator.FunctionContext, args []any, localeIndex int) language.Tag {
	tag := language.English
	if fc != nil && fc.Ctx != nil && fc.Ctx.Config.DefaultLocale != "" {
		if t, err := language.Parse(fc.Ctx.Config.DefaultLocale); err == nil {
			tag = t
		}
	}
	if localeIndex < len(args) {
		if s, ok := toString(args[localeIndex]); ok && s != "" {
			if t, err := language.Parse(s); err == nil {
				tag = t
			}
		}
	}
	return tag
}

func registerCasingBuiltins(r *Registry) {
	r.registerTransformer("titleCase", titleCase)
	r.registerTransformer("upperCase", upperCase)
	r.registerTransformer("normalize", normalize)
}
