package prompts

import _ "embed"

// Embedded prompt files

//go:embed extraction_system.txt
var extractionSystem string

//go:embed extraction_template.txt
var extractionTemplate string

//go:embed chat_persona.txt
var chatPersona string

//go:embed chat_user.txt
var chatUser string

func ExtractionSystem() string   { return extractionSystem }
func ExtractionTemplate() string { return extractionTemplate }
func ChatPersona() string        { return chatPersona }
func ChatUser() string           { return chatUser }
