package giftprogram

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProgramErrors - Custom error codes from the gift card program
var ProgramErrors = map[int]string{
	6000: "InvalidUnlockDate - Unlock date must not be in the past",
	6001: "InvalidRefundDate - Refund date must be after the unlock date",
	6002: "GiftCardLocked - Gift card is locked until its unlock date",
	6003: "GiftCardExpired - Gift card has passed its refund date",
	6004: "MerchantNotAllowed - Merchant is not on the card's allow-list",
	6005: "InsufficientBalance - Amount exceeds the remaining balance",
	6006: "Unauthorized - Only the card owner may do this",
	6007: "TooManyMerchants - At most 10 merchants are allowed",
	6008: "RefundNotAvailable - Refund date has not been reached yet",
	6009: "NoBalanceToRefund - Nothing left to refund",
	6010: "InvalidCardId - Card id does not match the account",
	6011: "HasBalance - Gift card still holds a balance",
}

// ExtractErrorCode tries multiple methods to extract custom program error code
func ExtractErrorCode(err error) *int {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Method 1: Parse the JSON structure
	// Format: "err": {"InstructionError": [0, {"Custom": 6004}]}
	type InstructionErrorData struct {
		InstructionError []interface{} `json:"InstructionError"`
	}
	type ErrorWrapper struct {
		Err InstructionErrorData `json:"err"`
	}

	if jsonStart := strings.Index(errStr, `"err":`); jsonStart != -1 {
		// Extract balanced JSON object
		jsonStr := errStr[jsonStart-1:]
		braceCount := 0
		endPos := -1

		for i, ch := range jsonStr {
			if ch == '{' {
				braceCount++
			} else if ch == '}' {
				braceCount--
				if braceCount == 0 {
					endPos = i + 1
					break
				}
			}
		}

		if endPos > 0 {
			jsonStr = "{" + jsonStr[:endPos]

			var wrapper ErrorWrapper
			if err := json.Unmarshal([]byte(jsonStr), &wrapper); err == nil {
				if len(wrapper.Err.InstructionError) >= 2 {
					if customMap, ok := wrapper.Err.InstructionError[1].(map[string]interface{}); ok {
						if customVal, ok := customMap["Custom"]; ok {
							switch v := customVal.(type) {
							case float64:
								code := int(v)
								return &code
							case string:
								if code, err := strconv.Atoi(v); err == nil {
									return &code
								}
							}
						}
					}
				}
			}
		}
	}

	// Method 2: Regex patterns for "Custom": 6004
	patterns := []string{
		`"Custom":\s*(\d+)`,     // "Custom": 6004
		`"Custom":\s*"(\d+)"`,   // "Custom": "6004"
		`Custom:\s*(\d+)`,       // Custom: 6004
		`error code:\s*(\d+)`,   // error code: 6004
		`Error Number:\s*(\d+)`, // Error Number: 6004 (from Anchor logs)
	}

	for _, pattern := range patterns {
		if matches := regexp.MustCompile(pattern).FindStringSubmatch(errStr); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return &code
			}
		}
	}

	// Method 3: Hex format - custom program error: 0x1774
	if matches := regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`).FindStringSubmatch(errStr); len(matches) > 1 {
		if code, err := strconv.ParseInt(matches[1], 16, 64); err == nil {
			intCode := int(code)
			return &intCode
		}
	}

	return nil
}

// ParseProgramError extracts and formats a program/network error for display
func ParseProgramError(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	// Check for BlockhashNotFound (transaction expired)
	if strings.Contains(errStr, "BlockhashNotFound") ||
		strings.Contains(errStr, "Blockhash not found") {
		return "Transaction expired. The blockhash is no longer valid. Please create a new transaction and try again."
	}

	// Try to get a custom program error code
	if code := ExtractErrorCode(err); code != nil {
		if msg, ok := ProgramErrors[*code]; ok {
			return msg
		}
		return fmt.Sprintf("Custom program error code: %d", *code)
	}

	if regexp.MustCompile(`simulation failed`).MatchString(errStr) {
		return "Transaction simulation failed. Check program logs for details."
	}

	if regexp.MustCompile(`insufficient funds`).MatchString(errStr) {
		return "Insufficient SOL balance to pay for transaction"
	}

	// Return truncated error
	if len(errStr) > 300 {
		return errStr[:300] + "..."
	}
	return errStr
}

// ExtractLogMessages extracts program logs from an RPC error
func ExtractLogMessages(err error) []string {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	logs := []string{}

	patterns := []string{
		`Program log: ([^"\\n]+?)(?:"|\\n|$)`, // With quotes
		`Program log: ([^\n]+)`,               // Without quotes
	}

	for _, pattern := range patterns {
		matches := regexp.MustCompile(pattern).FindAllStringSubmatch(errStr, -1)
		for _, match := range matches {
			if len(match) > 1 {
				log := strings.TrimSpace(match[1])
				if log != "" && !containsString(logs, log) {
					logs = append(logs, log)
				}
			}
		}
	}

	return logs
}

func containsString(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
