package provider

import (
	"fmt"

	"github.com/archbuilder/orchestrator/internal/apperrors"
)

// classifyHTTPError turns an HTTP provider's status code into a typed
// *apperrors.Error so the dispatcher's retry and the coordinator's
// fallback trigger can tell transient failures (429, 5xx) from
// permanent ones (any other 4xx, including auth failures) apart, per
// spec §4.5/§7's "4xx other than 429 is not retried" rule.
func classifyHTTPError(providerName string, statusCode int, message string) *apperrors.Error {
	kind := apperrors.KindProviderPermanent
	code := apperrors.CodeModelUnavailable
	if statusCode == 429 || statusCode >= 500 {
		kind = apperrors.KindProviderTransient
	}
	if statusCode == 401 || statusCode == 403 {
		code = apperrors.CodeUnauthorized
	}
	if message == "" {
		message = fmt.Sprintf("status %d", statusCode)
	}
	return apperrors.New(
		fmt.Sprintf("provider.%s", providerName),
		code,
		kind,
		message,
		fmt.Errorf("provider %s: status %d: %s", providerName, statusCode, message),
	)
}

// classifyTransportError wraps a non-HTTP failure (connection refused,
// reset, timeout) as provider-transient: these are exactly the network
// failures spec §7 groups with 5xx/429 under "provider transient".
func classifyTransportError(providerName, op string, err error) *apperrors.Error {
	return apperrors.New(
		fmt.Sprintf("provider.%s", providerName),
		apperrors.CodeNetwork,
		apperrors.KindProviderTransient,
		op,
		err,
	)
}
