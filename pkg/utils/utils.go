// pkg/utils/utils.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration форматирует продолжительность в читаемый вид
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	return fmt.Sprintf("%dм", minutes)
}

// FormatPrice форматирует цену с заданной точностью
func FormatPrice(price float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, price)
}

// TruncateText обрезает строку до maxLen рун и схлопывает переводы строк
func TruncateText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}

// ParseDurationMinutes преобразует строку вида "60", "90m", "2h" в минуты
func ParseDurationMinutes(value string) (int, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	if strings.HasSuffix(value, "h") {
		var hours int
		if _, err := fmt.Sscanf(value, "%dh", &hours); err != nil {
			return 0, fmt.Errorf("неизвестная длительность: %s", value)
		}
		return hours * 60, nil
	}

	value = strings.TrimSuffix(value, "m")
	var minutes int
	if _, err := fmt.Sscanf(value, "%d", &minutes); err != nil {
		return 0, fmt.Errorf("неизвестная длительность: %s", value)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("длительность должна быть положительной: %s", value)
	}
	return minutes, nil
}
