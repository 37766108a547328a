package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"job-board/domain/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const DateLayout = "2006-01-02"

// Normalize trims every free-text field. An empty status stays empty; the
// caller decides what it means.
func (in ListingInput) Normalize() ListingInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	return in
}

// Validate checks a normalized input. today is truncated to the day so a
// listing may start on the current date.
func (in ListingInput) Validate(today time.Time) error {
	today = today.UTC().Truncate(24 * time.Hour)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Company, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.Location, validation.Required),
		validation.Field(&in.Type, validation.Required,
			validation.In(model.ListingTypeFullTime, model.ListingTypePartTime, model.ListingTypeContract)),
		validation.Field(&in.Status,
			validation.In(model.ListingStatusActive, model.ListingStatusInactive)),
		validation.Field(&in.StartDate, validation.Required,
			validation.Date(DateLayout).Min(today).RangeError("start date cannot be in the past")),
		validation.Field(&in.EndDate,
			validation.Date(DateLayout),
			validation.By(in.endAfterStart)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
	}
	return nil
}

func (in ListingInput) endAfterStart(value interface{}) error {
	end, _ := value.(string)
	if end == "" {
		return nil
	}
	start, err := time.Parse(DateLayout, in.StartDate)
	if err != nil {
		return nil
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return nil
	}
	if !e.After(start) {
		return errors.New("end date must be after start date")
	}
	return nil
}

// Dates parses the validated date strings.
func (in ListingInput) Dates() (time.Time, *time.Time, error) {
	start, err := time.Parse(DateLayout, in.StartDate)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: start_date: %v", model.ErrValidation, err)
	}
	if in.EndDate == "" {
		return start, nil, nil
	}
	end, err := time.Parse(DateLayout, in.EndDate)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: end_date: %v", model.ErrValidation, err)
	}
	return start, &end, nil
}
