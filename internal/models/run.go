package models

import "time"

// RunStatus is the outcome of a regeneration run.
type RunStatus string

const (
	RunSuccess        RunStatus = "success"
	RunGenerateFailed RunStatus = "generate_failed"
	RunPublishFailed  RunStatus = "publish_failed"
)

// RunRecord is the ledger entry for one regeneration run of one dataset.
type RunRecord struct {
	RunID      string    `bson:"run_id" json:"runId"`
	Kind       Kind      `bson:"kind" json:"kind"`
	Status     RunStatus `bson:"status" json:"status"`
	Error      string    `bson:"error,omitempty" json:"error,omitempty"`
	Date       string    `bson:"date" json:"date"`
	Items      int       `bson:"items" json:"items"`
	TokensUsed int       `bson:"tokens_used" json:"tokensUsed"`
	Commit     string    `bson:"commit,omitempty" json:"commit,omitempty"`
	Trigger    string    `bson:"trigger" json:"trigger"`
	StartedAt  time.Time `bson:"started_at" json:"startedAt"`
	FinishedAt time.Time `bson:"finished_at" json:"finishedAt"`
}
