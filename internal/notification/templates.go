package notification

import (
	"fmt"
	"strings"
)

// Customer messages are plain WhatsApp text in the customer's language.
// Spanish is the house language; anything unrecognized falls back to it.

const fallbackLanguage = "es"

var orderCreatedMessages = map[string]string{
	"es": "¡Gracias por tu pedido! Total: ₡%.2f. Te avisaremos cuando esté listo.",
	"en": "Thanks for your order! Total: ₡%.2f. We'll let you know when it's ready.",
}

var orderStatusMessages = map[string]map[string]string{
	"in_progress": {
		"es": "Tu ropa ya está en proceso de lavado.",
		"en": "Your laundry is now being washed.",
	},
	"ready": {
		"es": "¡Tu ropa está lista! Puedes pasar a recogerla cuando gustes.",
		"en": "Your laundry is ready! You can pick it up whenever you like.",
	},
	"delivered": {
		"es": "Pedido entregado. ¡Gracias por preferirnos!",
		"en": "Order delivered. Thank you for choosing us!",
	},
	"cancelled": {
		"es": "Tu pedido ha sido cancelado. Escríbenos si tienes alguna duda.",
		"en": "Your order has been cancelled. Message us if you have any questions.",
	},
}

var escalationResolvedMessages = map[string]string{
	"es": "Un agente ha atendido tu consulta. ¿Hay algo más en lo que podamos ayudarte?",
	"en": "An agent has taken care of your request. Is there anything else we can help with?",
}

var pickupReminderMessages = map[string]string{
	"es": "Recordatorio: tu ropa lleva %d día(s) lista para recoger. ¡Te esperamos!",
	"en": "Reminder: your laundry has been ready for pickup for %d day(s). See you soon!",
}

var followUpMessages = map[string]string{
	"es": "¡Hola! Hace tiempo que no te vemos por la lavandería. ¿Te ayudamos con tu próxima carga?",
	"en": "Hi! It's been a while since your last visit. Can we help with your next load?",
}

func pickLanguage(messages map[string]string, language string) string {
	if msg, ok := messages[strings.ToLower(language)]; ok {
		return msg
	}
	return messages[fallbackLanguage]
}

func orderCreatedMessage(language string, total float64) string {
	return fmt.Sprintf(pickLanguage(orderCreatedMessages, language), total)
}

// orderStatusMessage returns the customer-facing text for a status change,
// or false for internal stages that customers are not told about.
func orderStatusMessage(language, status string) (string, bool) {
	messages, ok := orderStatusMessages[status]
	if !ok {
		return "", false
	}
	return pickLanguage(messages, language), true
}

func escalationResolvedMessage(language string) string {
	return pickLanguage(escalationResolvedMessages, language)
}

func pickupReminderMessage(language string, daysWaiting int) string {
	return fmt.Sprintf(pickLanguage(pickupReminderMessages, language), daysWaiting)
}

func followUpMessage(language string) string {
	return pickLanguage(followUpMessages, language)
}
