package core

type Services struct {
	FormTemplate *FormTemplateService
	Report       *ReportService
	Assignment   *AssignmentService
	Submission   *SubmissionService
	Event        *EventService
	Attachment   *AttachmentService
	User         *UserService
	Search       *SearchService
	Propagator   *Propagator
}

// NewServices wires the service graph. The publisher is injected rather than
// reached through a package-level handle so the real-time fabric stays an
// explicit capability.
func NewServices(db DB, trackingPrefix string, pub Publisher) *Services {
	reports := NewReportService(db, trackingPrefix)
	events := NewEventService(db)
	templates := NewFormTemplateService(db)
	propagator := NewPropagator(db, reports, events, templates, pub)

	return &Services{
		FormTemplate: templates,
		Report:       reports,
		Assignment:   NewAssignmentService(db),
		Submission:   NewSubmissionService(db, propagator),
		Event:        events,
		Attachment:   NewAttachmentService(db, events),
		User:         NewUserService(db),
		Search:       NewSearchService(db),
		Propagator:   propagator,
	}
}
