package domain

// Question is a single DNS question section entry: "resolve this name
// for this type and class".
type Question struct {
	Name  DomainName
	Type  RRType
	Class RRClass
}

// NewQuestion builds a Question from the given name, type and class. No
// defaults are applied: a zero type or class is stored as zero.
func NewQuestion(name DomainName, qtype RRType, class RRClass) Question {
	return Question{Name: name, Type: qtype, Class: class}
}
