package auth

import (
	"strings"

	"github.com/dmitrijs2005/projectkeeper/internal/common"
)

// ParseBearer extracts the credential of a "Bearer <token>" authorization
// value. The scheme is matched case-insensitively.
func ParseBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
