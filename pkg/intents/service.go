package intents

import (
	"strings"
	"unicode"
)

// servicePrefix is stripped from intent names without an explicit action.
const servicePrefix = "Hass"

// intentActions maps intent names to actions where the name alone does
// not derive the right one.
var intentActions = map[string]string{
	"HassTurnOn":             "turn_on",
	"HassTurnOff":            "turn_off",
	"HassToggle":             "toggle",
	"HassLightSet":           "turn_on",
	"HassSetVolume":          "volume_set",
	"HassMediaPause":         "media_pause",
	"HassMediaUnpause":       "media_play",
	"HassMediaNext":          "media_next_track",
	"HassMediaPrevious":      "media_previous_track",
	"HassSetTimer":           "set_timer",
	"HassCancelTimer":        "cancel_timer",
	"HassTimerStatus":        "timer_status",
	"HassClimateSetHvacMode": "set_hvac_mode",
	"HassOpenCover":          "open_cover",
	"HassCloseCover":         "close_cover",
	"HassSetCoverPosition":   "set_cover_position",
	"HassLockLock":           "lock",
	"HassLockUnlock":         "unlock",
	"HassVacuumStart":        "start",
	"HassVacuumReturnToBase": "return_to_base",
	"HassGetWeather":         "get_forecast",
}

// ServiceName derives "domain.action" for an intent. Intents without an
// explicit action lose the "Hass" prefix, are converted to snake_case and
// lose a leading "<domain>_".
func ServiceName(intent, domain string) string {
	if action, ok := intentActions[intent]; ok {
		return domain + "." + action
	}

	action := snakeCase(strings.TrimPrefix(intent, servicePrefix))
	action = strings.TrimPrefix(action, domain+"_")
	return domain + "." + action
}

// snakeCase inserts an underscore before every upper-case letter except
// the first rune and lower-cases the result.
func snakeCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}
