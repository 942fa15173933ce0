package common

// GetAccountFromArgs extracts the calendar account id from request arguments.
// Defaults to "default" when the caller did not name one.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}

// GetSessionFromArgs extracts the conversation session id from request
// arguments. An empty string means the caller wants a fresh session.
func GetSessionFromArgs(args map[string]interface{}) string {
	if sessionVal, ok := args["session_id"].(string); ok {
		return sessionVal
	}
	return ""
}
