// Package postip runs an agent that publishes the host's public IP address to
// Google Drive.
//
// The agent authorizes once (reusing, refreshing or interactively acquiring an
// OAuth2 token), then repeatedly discovers the public address and, when it
// differs from the last published one, replaces the Drive file holding it.
// Transient failures are retried after a recovery interval; configuration
// errors and a misbehaving address service stop the agent.
//
// Example:
//
//	agent, err := postip.New(ctx, &postip.Options{CredentialsCommand: "pass show google/post-ip"})
//	if err != nil {
//		return err
//	}
//	return agent.Run(ctx)
package postip
