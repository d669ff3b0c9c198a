package contract

type EventType string

const (
	EventTimeline      EventType = "timeline_event"
	EventArtifact      EventType = "artifact_update"
	EventContention    EventType = "contention"
	EventClarification EventType = "clarification"
	EventCompletion    EventType = "completion"
	EventError         EventType = "error"
)

// Event is the tagged union pushed to subscribers. Data is one of the payload
// structs below; events are immutable once emitted.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type TimelineStatus string

const (
	TimelinePending  TimelineStatus = "pending"
	TimelineAccepted TimelineStatus = "accepted"
	TimelineRevised  TimelineStatus = "revised"
	TimelineRejected TimelineStatus = "rejected"
)

type TimelineEvent struct {
	Agent  string         `json:"agent"`
	Action string         `json:"action"`
	Status TimelineStatus `json:"status"`
}

type ArtifactUpdate struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Version int    `json:"version"`
	IsOpen  bool   `json:"isOpen"`
}

type ContentionStatus string

const (
	ContentionOpen     ContentionStatus = "open"
	ContentionResolved ContentionStatus = "resolved"
)

type Contention struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Agents     []string         `json:"agents"`
	Status     ContentionStatus `json:"status"`
	StatementA string           `json:"statementA"`
	StatementB string           `json:"statementB"`
	Outcome    string           `json:"outcome"`
}

type Clarification struct {
	Question string `json:"question"`
}

type Completion struct {
	Blueprint  any    `json:"blueprint"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Error      bool   `json:"error,omitempty"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

func Timeline(agent, action string, status TimelineStatus) Event {
	return Event{Type: EventTimeline, Data: TimelineEvent{Agent: agent, Action: action, Status: status}}
}

func Artifact(id, title, content string, version int) Event {
	return Event{Type: EventArtifact, Data: ArtifactUpdate{ID: id, Title: title, Content: content, Version: version, IsOpen: true}}
}
