package usecase

import (
	"context"
	"fmt"
	"strings"

	"job-board/domain/dto"
	"job-board/domain/repository"
	"job-board/infrastructure/logger"
)

const (
	descriptionSystemPrompt = "You write clear, inclusive job descriptions for a job board. " +
		"Reply with the description only, in plain paragraphs and short bullet lists, without a title line."
	descriptionFailure = "Failed to generate job description. Please try again."
)

type IDescriptionUsecase interface {
	GenerateDescription(ctx context.Context, req dto.GenerateDescriptionRequest) dto.GenerateDescriptionResult
}

type DescriptionUsecase struct {
	completion repository.ICompletion
}

func NewDescriptionUsecase(completion repository.ICompletion) IDescriptionUsecase {
	return &DescriptionUsecase{completion: completion}
}

func (u *DescriptionUsecase) GenerateDescription(ctx context.Context, req dto.GenerateDescriptionRequest) dto.GenerateDescriptionResult {
	title := strings.TrimSpace(req.JobTitle)
	if title == "" {
		return dto.GenerateDescriptionResult{Error: "Job title is required"}
	}
	if u.completion == nil {
		return dto.GenerateDescriptionResult{Error: descriptionFailure}
	}

	out, err := u.completion.Complete(ctx, descriptionSystemPrompt, descriptionPrompt(title, req))
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"job_title": title,
		}).Error("Error while generating job description")
		return dto.GenerateDescriptionResult{Error: descriptionFailure}
	}
	return dto.GenerateDescriptionResult{Success: true, Description: strings.TrimSpace(out)}
}

func descriptionPrompt(title string, req dto.GenerateDescriptionRequest) string {
	company := orDefault(req.Company, "a leading company")
	location := orDefault(req.Location, "Various locations")
	jobType := orDefault(req.JobType, "Full-Time")

	var b strings.Builder
	fmt.Fprintf(&b, "Write a job description for a %s position of %s at %s, based in %s.\n", jobType, title, company, location)
	b.WriteString("Include an overview of the role, key responsibilities, required qualifications, ")
	b.WriteString("nice-to-have skills and what the company offers.\n")
	b.WriteString("Keep it between 250 and 400 words.")
	return b.String()
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
