package natsadapter

const (
	commandStream = "CAMPUS_NAV_COMMANDS"
	eventStream   = "CAMPUS_NAV_EVENTS"

	commandSubjectPrefix = "campus.nav.command."
	eventSubjectPrefix   = "campus.nav.event."

	// EventSubjectAll matches the events of every session.
	EventSubjectAll = eventSubjectPrefix + ">"
	// CommandSubjectAll matches the commands of every session.
	CommandSubjectAll = commandSubjectPrefix + ">"
)

// EventSubject is the subject session events for id are published on.
func EventSubject(sessionID string) string {
	return eventSubjectPrefix + sessionID
}

// CommandSubject is the subject commands for id are queued on.
func CommandSubject(sessionID string) string {
	return commandSubjectPrefix + sessionID
}
