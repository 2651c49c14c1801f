package normalize

import (
	"strings"
	"time"
)

// Input is the raw signed-contract data as delivered by the signature platform.
type Input struct {
	Name         string
	Email        string
	PhoneCountry string
	PhoneNumber  string
	Answers      []Answer
}

// ContactRecord identifies the person going through onboarding or renewal.
// Email is the join key across the CRM and billing systems.
type ContactRecord struct {
	Name      string
	Email     string
	Phone     string
	TaxID     string
	BirthDate *time.Time
	Address   string
}

// ContractTerms are the commercial terms read from the form. Nil dates are
// absent: they failed to parse or were not supplied.
type ContractTerms struct {
	Plan             Plan
	Duration         Duration
	InstallmentValue float64
	BillingMethod    BillingMethod
	ClassWeekday     *time.Weekday
	StartDate        *time.Time
	EndDate          *time.Time
	DueDate          *time.Time
	FinalDueDate     *time.Time
}

// Result is the canonical record plus every validation failure met on the way.
type Result struct {
	Contact ContactRecord
	Terms   ContractTerms
	Issues  []error
}

// HasSchedule reports whether the terms carry everything the contract date
// calculator needs.
func (t ContractTerms) HasSchedule() bool {
	return t.StartDate != nil && t.Duration > 0 && t.ClassWeekday != nil
}

// Normalize turns the signer block and the free-form answers into canonical
// fields. It never fails: bad fields are left empty and reported in Issues.
func Normalize(in Input) Result {
	var r Result
	answers := NewAnswers(in.Answers)

	r.Contact.Name = strings.Join(strings.Fields(in.Name), " ")
	r.Contact.Email = NormalizeEmail(in.Email)
	if r.Contact.Email == "" {
		r.addIssue("email", "", ErrMissingField)
	}

	rawPhone := strings.TrimSpace(in.PhoneCountry) + strings.TrimSpace(in.PhoneNumber)
	if phone, err := NormalizePhone(rawPhone); err != nil {
		r.addIssue("telefone", rawPhone, err)
	} else {
		r.Contact.Phone = phone
	}

	if raw, ok := answers.Lookup(taxIDFragments...); ok {
		if taxID, err := NormalizeTaxID(raw); err != nil {
			r.addIssue("cpf", raw, err)
		} else {
			r.Contact.TaxID = taxID
		}
	}

	r.Contact.BirthDate = r.date(answers, "data de nascimento", birthDateFragments)
	if raw, ok := answers.Lookup(addressFragments...); ok {
		r.Contact.Address = strings.Join(strings.Fields(raw), " ")
	}

	r.Terms.Plan = resolvePlan(answers)
	r.Terms.Duration = resolveDuration(answers)

	if raw, ok := answers.Lookup(amountFragments...); ok {
		if v, err := ParseAmount(raw); err != nil {
			r.addIssue("valor das parcelas", raw, err)
		} else {
			r.Terms.InstallmentValue = v
		}
	}
	if raw, ok := answers.Lookup(billingFragments...); ok {
		r.Terms.BillingMethod = ParseBillingMethod(raw)
	}
	if raw, ok := answers.Lookup(classDayFragments...); ok {
		if wd, err := ParseWeekday(raw); err != nil {
			r.addIssue("dia da aula", raw, err)
		} else {
			r.Terms.ClassWeekday = &wd
		}
	}

	r.Terms.DueDate = r.date(answers, "data do primeiro pagamento", firstPaymentFragments)
	r.Terms.FinalDueDate = r.date(answers, "data ultimo pagamento", lastPaymentFragments)
	r.Terms.StartDate = r.date(answers, "inicio do contrato", startDateFragments)
	if r.Terms.StartDate == nil {
		r.Terms.StartDate = r.Terms.DueDate
	}
	r.Terms.EndDate = r.Terms.FinalDueDate

	return r
}

func (r *Result) date(answers Answers, field string, fragments []string) *time.Time {
	raw, ok := answers.Lookup(fragments...)
	if !ok {
		return nil
	}
	t, ok := ParseDate(raw)
	if !ok {
		r.addIssue(field, raw, ErrInvalidDate)
		return nil
	}
	return t
}

func (r *Result) addIssue(field, value string, err error) {
	r.Issues = append(r.Issues, &FieldError{Field: field, Value: value, Err: err})
}

// resolvePlan reads the answer whose key names the package. Only when no key
// names it is the first unclaimed answer that reads as a plan accepted.
func resolvePlan(answers Answers) Plan {
	if answers.Matches(planFragments...) {
		isPlan := func(v string) bool { return ParsePlan(v).Known() }
		if raw, ok := answers.LookupFunc(isPlan, planFragments...); ok {
			return ParsePlan(raw)
		}
		return PlanUnknown
	}
	for _, v := range answers.UnclaimedValues() {
		if p := ParsePlan(v); p.Known() {
			return p
		}
	}
	return PlanUnknown
}

func resolveDuration(answers Answers) Duration {
	if answers.Matches(durationFragments...) {
		isDuration := func(v string) bool { _, ok := ParseDuration(v); return ok }
		if raw, ok := answers.LookupFunc(isDuration, durationFragments...); ok {
			d, _ := ParseDuration(raw)
			return d
		}
		return DurationNone
	}
	for _, v := range answers.UnclaimedValues() {
		if d, ok := ParseDuration(v); ok {
			return d
		}
	}
	return DurationNone
}
