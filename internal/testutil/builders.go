package testutil

import (
	"github.com/backlot/backlot-api/internal/domain/model"
)

// NewCreateJobRequest returns a valid posting request with sensible defaults.
// Overrides mutate the request before it is returned.
func NewCreateJobRequest(overrides ...func(*model.CreateJobRequest)) *model.CreateJobRequest {
	req := &model.CreateJobRequest{
		OwnerID:         "hirer-1",
		Title:           "Lead Camera Operator",
		Description:     "Feature production, three month shoot",
		Department:      "camera",
		JobType:         "contract",
		SalaryMin:       60000,
		SalaryMax:       90000,
		WorkModality:    model.ModalityOnSite,
		ExperienceLevel: model.ExperienceSenior,
		Positions:       1,
		Tags:            []string{"film", "steadicam"},
	}
	for _, o := range overrides {
		o(req)
	}
	return req
}

// NewApplyRequest returns a valid application request for the given job.
func NewApplyRequest(jobID string, overrides ...func(*model.ApplyRequest)) *model.ApplyRequest {
	req := &model.ApplyRequest{
		JobID:       jobID,
		CandidateID: "actor-1",
	}
	for _, o := range overrides {
		o(req)
	}
	return req
}

// StatusChange returns a status change request targeting the given status.
func StatusChange(status model.ApplicationStatus, overrides ...func(*model.StatusChangeRequest)) model.StatusChangeRequest {
	req := model.StatusChangeRequest{Status: status}
	for _, o := range overrides {
		o(&req)
	}
	return req
}

// NewSendMessageRequest returns a valid message request for the given thread.
func NewSendMessageRequest(applicationID, senderID string, overrides ...func(*model.SendMessageRequest)) *model.SendMessageRequest {
	req := &model.SendMessageRequest{
		ApplicationID: applicationID,
		SenderID:      senderID,
		Body:          "Thanks for applying, can you share a reel?",
	}
	for _, o := range overrides {
		o(req)
	}
	return req
}
