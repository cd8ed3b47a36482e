package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Константы валидации
const (
	MinUsernameLength         = 3
	MaxUsernameLength         = 30
	MinJobTitleLength         = 3
	MaxJobTitleLength         = 200
	MinJobDescriptionLength   = 10
	MaxJobDescriptionLength   = 5000
	MinMilestoneTitleLength   = 3
	MaxMilestoneTitleLength   = 200
	MaxSkillLength            = 50
	MaxSkillsCount            = 50
)

// MaxAmount — верхняя граница любых денежных сумм (100 миллионов).
var MaxAmount = decimal.NewFromInt(100_000_000)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateRole проверяет роль пользователя.
func ValidateRole(role string) error {
	if role != "employer" && role != "freelancer" {
		return fmt.Errorf("роль должна быть employer или freelancer")
	}
	return nil
}

// ValidateJobTitle проверяет заголовок работы.
func ValidateJobTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("заголовок работы обязателен")
	}
	return ValidateLength("заголовок работы", strings.TrimSpace(title), MinJobTitleLength, MaxJobTitleLength)
}

// ValidateJobDescription проверяет описание работы.
func ValidateJobDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("описание работы обязательно")
	}
	return ValidateLength("описание работы", strings.TrimSpace(description), MinJobDescriptionLength, MaxJobDescriptionLength)
}

// ValidateMilestoneTitle проверяет название вехи.
func ValidateMilestoneTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("название вехи обязательно")
	}
	return ValidateLength("название вехи", strings.TrimSpace(title), MinMilestoneTitleLength, MaxMilestoneTitleLength)
}

// ValidateAmount проверяет, что денежная сумма строго положительна
// и не превышает разумный максимум.
func ValidateAmount(fieldName string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%s должна быть положительной", fieldName)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%s не может превышать %s", fieldName, MaxAmount.String())
	}
	return nil
}

// ValidateSkills проверяет массив навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("количество навыков не может превышать %d", MaxSkillsCount)
	}

	seen := make(map[string]bool)
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			return fmt.Errorf("навык не может быть пустым")
		}
		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return fmt.Errorf("навык не может быть длиннее %d символов", MaxSkillLength)
		}
		skillLower := strings.ToLower(skill)
		if seen[skillLower] {
			return fmt.Errorf("навык '%s' указан дважды", skill)
		}
		seen[skillLower] = true
	}

	return nil
}
