package ports

// Notifier surfaces user-visible notices
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}
