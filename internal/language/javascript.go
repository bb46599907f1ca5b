package language

func init() {
	Register(Profile{
		Name:      "javascript",
		Image:     "node:20-alpine",
		Extension: "js",
		RunCommand: []string{
			"node",
			"code.js",
		},
	})
}
