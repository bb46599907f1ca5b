package language

func init() {
	Register(Profile{
		Name:      "java",
		Image:     "eclipse-temurin:21-jdk-alpine",
		Extension: "java",

		// java's single-file source launcher compiles and runs in one
		// step, so no separate compile pass is needed.
		RunCommand: []string{
			"java",
			"code.java",
		},
	})
}
