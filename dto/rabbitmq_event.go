package dto

import "github.com/calcbuilder/adminstack/internal/enum"

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	CompanyId  string          `json:"companyId"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	UserId      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	Timestamp   string `json:"timestamp"`
}

// EventCompleted notifies listeners that an entity changed.
type EventCompleted struct {
	CompanyId  string          `json:"companyId"`
	EntityType enum.EntityType `json:"entityType"`
	EntityIds  []string        `json:"entityIds"`
	Create     bool            `json:"create"`
	Update     bool            `json:"update"`
	Delete     bool            `json:"delete"`
}

type EventCompletedDetails struct {
	Create bool
	Update bool
	Delete bool
}
