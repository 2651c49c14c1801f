package models

import (
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/normalize"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/onboarding"
)

// SignedContractAnswer is one form variable filled in on the contract.
type SignedContractAnswer struct {
	Variable string `json:"variable" validate:"max=500"`
	Value    string `json:"value" validate:"max=5000"`
}

// SignedContractSigner is the signer block of the signature platform webhook.
type SignedContractSigner struct {
	Name         string `json:"name" validate:"max=255"`
	Email        string `json:"email" validate:"required,email,max=191"`
	PhoneCountry string `json:"phone_country" validate:"max=5"`
	PhoneNumber  string `json:"phone_number" validate:"max=30"`
}

// SignedContractPayload is the body of POST /webhook/zapsign.
type SignedContractPayload struct {
	Token           string                 `json:"token" validate:"max=191"`
	Status          string                 `json:"status" validate:"required,max=50"`
	Answers         []SignedContractAnswer `json:"answers" validate:"max=200,dive"`
	SignerWhoSigned SignedContractSigner   `json:"signer_who_signed"`
}

// Event converts the payload into the orchestrator's input.
func (p *SignedContractPayload) Event() onboarding.Event {
	answers := make([]normalize.Answer, 0, len(p.Answers))
	for _, a := range p.Answers {
		answers = append(answers, normalize.Answer{Key: a.Variable, Value: a.Value})
	}
	return onboarding.Event{
		Token:  p.Token,
		Status: p.Status,
		Input: normalize.Input{
			Name:         p.SignerWhoSigned.Name,
			Email:        p.SignerWhoSigned.Email,
			PhoneCountry: p.SignerWhoSigned.PhoneCountry,
			PhoneNumber:  p.SignerWhoSigned.PhoneNumber,
			Answers:      answers,
		},
	}
}

// ContractScheduleInput is one record of POST /api/v1/contract-schedules.
type ContractScheduleInput struct {
	Email          string `json:"email" validate:"omitempty,email,max=191"`
	StartDate      string `json:"start_date" validate:"required"`
	DurationMonths int    `json:"duration_months" validate:"gte=0,lte=120"`
	ClassWeekday   string `json:"class_weekday" validate:"required"`
}

type ContractScheduleBatch struct {
	Records []ContractScheduleInput `json:"records" validate:"required,min=1,max=500,dive"`
}
