package language

func init() {
	Register(Profile{
		Name:      "python",
		Image:     "python:3.11-alpine",
		Extension: "py",
		RunCommand: []string{
			"python",
			"-u",
			"code.py",
		},
	})
}
