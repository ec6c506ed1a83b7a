package present

import (
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
)

// Order statuses in the order they progress
const (
	StatusPlaced         = "Placed"
	StatusProcessing     = "Processing"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
)

// OrderStatuses lists every order status an admin may pick
var OrderStatuses = []string{
	StatusPlaced,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// NextOrderStatuses returns the statuses an order in current may move to.
// Cancelled and Delivered are final; otherwise the order may stay, move
// forward, or be cancelled. Unknown statuses allow nothing.
func NextOrderStatuses(current string) []string {
	switch current {
	case StatusCancelled:
		return []string{StatusCancelled}
	case StatusDelivered:
		return []string{StatusDelivered}
	}

	idx := slices.Index(OrderStatuses, current)
	if idx == -1 {
		return nil
	}
	next := slices.Clone(OrderStatuses[idx : len(OrderStatuses)-1])
	return append(next, StatusCancelled)
}

// Tone is the colour class of a status badge
type Tone string

const (
	ToneSuccess   Tone = "success"
	ToneWarning   Tone = "warning"
	ToneDanger    Tone = "danger"
	ToneInfo      Tone = "info"
	TonePrimary   Tone = "primary"
	ToneSecondary Tone = "secondary"
	ToneLight     Tone = "light"
)

var returnTones = map[string]Tone{
	"PENDING":  ToneSecondary,
	"APPROVED": ToneSuccess,
	"REJECTED": ToneDanger,
	"REFUNDED": ToneInfo,
	"REPLACED": TonePrimary,
	"RETURNED": TonePrimary,
}

// ReturnStatusTone is the badge colour of a return request status
func ReturnStatusTone(status string) Tone {
	if tone, ok := returnTones[strings.ToUpper(status)]; ok {
		return tone
	}
	return ToneLight
}

var orderTones = map[string]Tone{
	StatusPlaced:         ToneSecondary,
	StatusProcessing:     ToneInfo,
	StatusShipped:        TonePrimary,
	StatusOutForDelivery: ToneWarning,
	StatusDelivered:      ToneSuccess,
	StatusCancelled:      ToneDanger,
}

// OrderStatusTone is the badge colour of an order status
func OrderStatusTone(status string) Tone {
	if tone, ok := orderTones[status]; ok {
		return tone
	}
	return ToneLight
}

var toneStyles = map[Tone]func(interface{}) string{
	ToneSuccess:   promptui.Styler(promptui.FGGreen),
	ToneWarning:   promptui.Styler(promptui.FGYellow),
	ToneDanger:    promptui.Styler(promptui.FGRed),
	ToneInfo:      promptui.Styler(promptui.FGCyan),
	TonePrimary:   promptui.Styler(promptui.FGBlue, promptui.FGBold),
	ToneSecondary: promptui.Styler(promptui.FGFaint),
}

// Badge renders text in the colour of tone. Colour is skipped when plain is set.
func Badge(text string, tone Tone, plain bool) string {
	style, ok := toneStyles[tone]
	if plain || !ok {
		return text
	}
	return style(text)
}
