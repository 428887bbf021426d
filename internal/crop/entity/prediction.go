package entity

import "time"

// SoilSample is one set of agronomic measurements submitted for a
// recommendation.
type SoilSample struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

// Prediction is a persisted recommendation, optionally tied to the account
// that requested it. The chat assistant summarizes recent predictions as the
// farm context for its prompts.
type Prediction struct {
	ID          int64     `db:"id" json:"id,string"`
	AccountID   *int64    `db:"account_id" json:"-"`
	Nitrogen    float64   `db:"nitrogen" json:"nitrogen"`
	Phosphorus  float64   `db:"phosphorus" json:"phosphorus"`
	Potassium   float64   `db:"potassium" json:"potassium"`
	Temperature float64   `db:"temperature" json:"temperature"`
	Humidity    float64   `db:"humidity" json:"humidity"`
	PH          float64   `db:"ph" json:"ph"`
	Rainfall    float64   `db:"rainfall" json:"rainfall"`
	Crop        string    `db:"crop" json:"crop"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
