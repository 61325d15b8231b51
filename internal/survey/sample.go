package survey

import "github.com/SAP-F-2025/survey-assistant/internal/models"

// SampleQuestions is the built-in question set used when the configured
// question source cannot be reached.
func SampleQuestions() models.QuestionSet {
	return models.QuestionSet{
		{Text: "What is your name?", Type: models.ShortAnswer},
		{
			Text:    "Will you attend the Christmas Party?",
			Type:    models.MultipleChoice,
			Options: []string{"Yes, I'll be there", "Sorry, can't make it"},
		},
		{Text: "How many of you are attending?", Type: models.ShortAnswer},
		{
			Text:    "Would you like to bring a dish to share? If yes, what type of dish?",
			Type:    models.Checkboxes,
			Options: []string{"Mains", "Salad", "Dessert", "Drinks", "Sides/Appetizers", "Other:"},
		},
		{Text: "Do you have any allergies or dietary restrictions?", Type: models.ShortAnswer},
		{Text: "What are your suggestions for the food we should order for the party?", Type: models.Paragraph},
	}
}
