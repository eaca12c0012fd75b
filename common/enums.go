// The only reason this package exists is because both configuration and
// command line processing need the same enums and I do not want cmd to depend
// on full program configuration.
package common

// Specification of the document title origin.
// ENUM(chatTitle, markdownTitle, aiGenerated)
type TitleSource int

// Specification of notification severity reported to the status collaborator.
// ENUM(info, success, warning, error)
type NotifyType int
