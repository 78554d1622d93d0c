package functions

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// textEquals: locale-aware case-insensitive string equality (spec §4.9);
// accents still distinguish strings. textEquals(a, b, locale?) — when the
// locale is omitted or unparseable, RuntimeConfig.DefaultLocale is used,
// and English when that is unset or unparseable too.
func textEquals(fc *evaluator.FunctionContext, args []any) (any, error) {
	a, err := argString("textEquals", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := argString("textEquals", args, 1)
	if err != nil {
		return nil, err
	}
	col := collatorFor(fc, args, 2)
	return col.CompareString(a, b) == 0, nil
}

// textBefore: locale-aware ordering predicate. textBefore(a, b, locale?)
// reports whether a sorts strictly before b under the given (or default)
// collation — used by CONDITION expressions gating step order on
// locale-sensitive fields (e.g. surname comparisons).
func textBefore(fc *evaluator.FunctionContext, args []any) (any, error) {
	a, err := argString("textBefore", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := argString("textBefore", args, 1)
	if err != nil {
		return nil, err
	}
	col := collatorFor(fc, args, 2)
	return col.CompareString(a, b) < 0, nil
}

func collatorFor(fc *evaluator.FunctionContext, args []any, localeIndex int) *collate.Collator {
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
	return collate.New(tag, collate.IgnoreCase)
}

func registerTextBuiltins(r *Registry) {
	r.registerCondition("textEquals", textEquals)
	r.registerCondition("textBefore", textBefore)
}
