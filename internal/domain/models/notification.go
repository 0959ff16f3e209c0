package models

// Notification is a rendered e-mail to a manufacturer.
type Notification struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
