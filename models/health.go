package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionHealthChecks = "healthchecks"
)

type Health struct {
	Id              *primitive.ObjectID `bson:"_id,omitempty"`
	InstanceID      string              `bson:"instance_id"`
	Hostname        string              `bson:"hostname"`
	OperatorAddress string              `bson:"operator_address"`
	TotalNGOs       uint64              `bson:"total_ngos"`
	TotalDonations  uint64              `bson:"total_donations"`
	ServiceHealths  []ServiceHealth     `bson:"service_healths"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
}
