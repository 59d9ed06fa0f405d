package answer

// Disclaimer ends every answer.
const Disclaimer = "Ceci n'est pas un conseil juridique professionnel. " +
	"Consultez toujours un avocat ou un notaire pour obtenir " +
	"des conseils adaptés à votre situation."

const (
	notFoundMessage       = "Désolé, je n'ai pas trouvé l'information pertinente dans la base de données ou sur le web pour répondre à cette question."
	synthesisErrorMessage = "Désolé, une erreur s'est produite lors de la génération de la réponse."
	technicalErrorMessage = "Désolé, une erreur technique s'est produite. Veuillez réessayer."
)

func withDisclaimer(msg string) string {
	return msg + "\n\n" + Disclaimer
}
