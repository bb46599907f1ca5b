package language

// Generic is the fallback profile for unrecognized language
// identifiers: the submission is written as plain text and handed to
// the shell. Kept out of the registry so Supported stays accurate.
var Generic = Profile{
	Name:      "generic",
	Image:     "alpine:latest",
	Extension: "txt",
	RunCommand: []string{
		"sh",
		"code.txt",
	},
}
