package layout

import (
	"math/rand"
	"strings"
)

// Greetings are the candidates for the session greeting.
var Greetings = []string{
	"Hello", "Hola", "Bonjour", "Hallo", "Ciao", "Olá", "Привет", "你好",
	"こんにちは", "안녕하세요", "مرحبا", "नमस्ते", "Hej", "Hei", "Γεια σας",
	"Merhaba", "Shalom", "Sawubona", "Jambo", "Aloha",
}

// RandomGreeting picks a greeting with whitespace normalized.
func RandomGreeting(rng *rand.Rand) string {
	g := Greetings[rng.Intn(len(Greetings))]
	return strings.Join(strings.Fields(g), " ")
}

// HomeContent is the landing page content.
func HomeContent() []Block {
	return []Block{
		Section{Title: &Title{Text: "Hello, I am Jesse Herrera", Greeting: true}},
		Section{
			Heading: "About",
			Para: &Paragraph{
				Segments: []string{
					"I have a passion for working with people making projects. ",
					"I'm experienced with building full stack and mobile apps. ",
					"Using tech like React, Next.js, TypeScript, .Net.",
				},
				CompactLines: []string{
					"I have a passion for working with people",
					"and building applications. I have",
					"experience building full stack",
					"applications and mobile apps. Using",
					"technologies like React, Next.js,",
					"Tailwind CSS, TypeScript, .Net, and more.",
				},
			},
		},
		ListItem{Text: "00. AWS CloudSharing Project", Href: "https://github.com/saintsjh/AwsCloudSharing"},
		ListItem{Text: "01. PyFaceID Project", Href: "https://github.com/saintsjh/PyFaceID"},
		ListItem{Text: "02. Employee Expense Reporting Information System"},
		ListItem{Text: "03. StreamFlow", Href: "https://github.com/saintsjh/StreamFlow"},
		ListItem{Text: "04. Elden Counter", Href: "https://github.com/saintsjh/EldenCounter"},
		ListItem{Text: "05. Arduino Robot", Href: "https://github.com/saintsjh/ArduinoRobot"},
	}
}
