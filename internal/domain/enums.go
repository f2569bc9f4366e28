package domain

import (
	"fmt"
	"strings"
)

type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobContract   JobType = "contract"
	JobFreelance  JobType = "freelance"
	JobInternship JobType = "internship"
	JobRemote     JobType = "remote"
)

var jobTypes = []JobType{JobFullTime, JobPartTime, JobContract, JobFreelance, JobInternship, JobRemote}

func ParseJobType(s string) (JobType, error) {
	for _, t := range jobTypes {
		if string(t) == strings.ToLower(strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "draft"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusOfferReceived      ApplicationStatus = "offer_received"
	StatusRejected           ApplicationStatus = "rejected"
	StatusWithdrawn          ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusDraft, StatusSubmitted, StatusUnderReview, StatusInterviewScheduled,
	StatusOfferReceived, StatusRejected, StatusWithdrawn,
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	for _, st := range ApplicationStatuses {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelLead      ExperienceLevel = "lead"
	LevelExecutive ExperienceLevel = "executive"
)

var levels = []ExperienceLevel{LevelEntry, LevelMid, LevelSenior, LevelLead, LevelExecutive}

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	for _, l := range levels {
		if string(l) == strings.ToLower(strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

type DocType string

const (
	DocResume      DocType = "resume"
	DocCoverLetter DocType = "cover_letter"
)
