package models

// DefaultTopics is the built-in topic catalog for the practice selector.
// The practice form also accepts a free-text override.
var DefaultTopics = []string{
	"Leadership vision",
	"Character education",
	"Smart campus",
	"Curriculum leadership",
	"Crisis management",
	"Community engagement",
}
