package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Character policies for free text: letters, digits, whitespace and common
// punctuation. Anything else (markup in particular) is rejected.
var (
	headlinePattern  = regexp.MustCompile(`^[\w\s\-.,!'"()\[\]]+$`)
	placePattern     = regexp.MustCompile(`^[\w\s\-.,'"()\[\]]+$`)
	paragraphPattern = regexp.MustCompile(`^[\w\s\-.,!'"()\[\]]*$`)
)

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "headline", headlinePattern)
	mustRegister(v, "place", placePattern)
	mustRegister(v, "paragraph", paragraphPattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		return re.MatchString(s)
	})
	if err != nil {
		panic(err)
	}
}

// Result is the outcome of validating one submission: valid when Errors is empty.
type Result struct {
	Errors []string
}

func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Message joins every field error into the single line shown to users.
func (r Result) Message() string { return strings.Join(r.Errors, ",") }

// fieldMessages maps "<Field>.<tag>" to the user-facing message.
type fieldMessages map[string]string

// collect walks fields in declaration order so messages come out stable.
func collect(err error, order []string, msgs fieldMessages, extra map[string]string) Result {
	byField := make(map[string]string, len(order))
	for f, m := range extra {
		byField[f] = m
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			if _, seen := byField[fe.StructField()]; seen {
				continue
			}
			msg, ok := msgs[fe.StructField()+"."+fe.Tag()]
			if !ok {
				msg = fe.StructField() + " is invalid"
			}
			byField[fe.StructField()] = msg
		}
	}
	var res Result
	for _, f := range order {
		if m, ok := byField[f]; ok {
			res.Errors = append(res.Errors, m)
		}
	}
	return res
}

// parseNumber reads a form number. ok is false for anything that is not a
// finite decimal; present is false when the field was left blank.
func parseNumber(raw string) (v float64, present, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, false
	}
	return f, true, true
}
