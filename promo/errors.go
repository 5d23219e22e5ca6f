package promo

// Kind identifies why a promo was rejected.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindNotYetValid       Kind = "not_yet_valid"
	KindExpired           Kind = "expired"
	KindBelowMinimum      Kind = "below_minimum"
	KindNotFirstOrder     Kind = "not_first_order"
	KindUsageLimitReached Kind = "usage_limit_reached"
	KindNotWeekend        Kind = "not_weekend"
	KindComboRequired     Kind = "combo_required"
	KindCategoryMismatch  Kind = "category_mismatch"
)

// Error is a typed promo validation failure. Two errors match under
// errors.Is when their kinds are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "promo " + e.Code + ": " + string(e.Kind)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrNotYetValid       = &Error{Kind: KindNotYetValid}
	ErrExpired           = &Error{Kind: KindExpired}
	ErrBelowMinimum      = &Error{Kind: KindBelowMinimum}
	ErrNotFirstOrder     = &Error{Kind: KindNotFirstOrder}
	ErrUsageLimitReached = &Error{Kind: KindUsageLimitReached}
	ErrNotWeekend        = &Error{Kind: KindNotWeekend}
	ErrComboRequired     = &Error{Kind: KindComboRequired}
	ErrCategoryMismatch  = &Error{Kind: KindCategoryMismatch}
)
