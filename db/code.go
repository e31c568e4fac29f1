package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"Gin_postgres_redis_tool_ledger/models"

	"gorm.io/gorm"
)

const (
	codePrefixLen   = 3
	codeMaxAttempts = 5
)

// codePrefix takes the first three letters or digits of name, upper-cased and
// padded with X ("Drill" -> "DRI", "5m tape" -> "5MT", "Ax" -> "AXX").
func codePrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() >= codePrefixLen {
			break
		}
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	for b.Len() < codePrefixLen {
		b.WriteByte('X')
	}
	return b.String()
}

// nextToolCode returns PREFIX-NNNN with NNNN one past the highest sequence
// already stored for that prefix.
func nextToolCode(tx *gorm.DB, name string) (string, error) {
	prefix := codePrefix(name)
	var codes []string
	if err := tx.Model(&models.Tool{}).
		Where("code LIKE ?", prefix+"-%").
		Pluck("code", &codes).Error; err != nil {
		return "", err
	}
	last := 0
	for _, c := range codes {
		n, err := strconv.Atoi(strings.TrimPrefix(c, prefix+"-"))
		if err != nil {
			continue // hand-assigned code sharing the prefix
		}
		if n > last {
			last = n
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, last+1), nil
}

// GenerateToolCode proposes the next free code for a tool called name. The
// value is only reserved once a tool is created with it.
func (r *Repo) GenerateToolCode(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalid("name", "required")
	}
	code, err := nextToolCode(r.DB.WithContext(ctx), name)
	if err != nil {
		return "", storage("generate tool code", err)
	}
	return code, nil
}
