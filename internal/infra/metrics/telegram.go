package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramRepliesTotal,
		registrationsTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users, unknown ones included.",
		},
		[]string{"command"},
	)

	// status: sent|error
	telegramRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_replies_total",
			Help: "Replies sent back to chats by delivery status.",
		},
		[]string{"status"},
	)

	// outcome: registered|missing_user_id|failed
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Outcome of /start registration attempts.",
		},
		[]string{"outcome"},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncTelegramReply(status string) {
	telegramRepliesTotal.WithLabelValues(norm(status)).Inc()
}

func IncRegistration(outcome string) {
	registrationsTotal.WithLabelValues(norm(outcome)).Inc()
}
