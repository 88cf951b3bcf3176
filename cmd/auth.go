package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/server"
	"github.com/desertthunder/rdx/internal/shared"
)

// AuthLogin runs the three-legged authorization.
//
// With an out-of-band callback the login URL is printed and the request pair is
// saved to the config file for 'auth complete'. Otherwise a local callback server
// receives the verifier and the access pair is saved directly.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	rdio := &r.config.Credentials.Rdio
	if !rdio.HasConsumer() {
		return fmt.Errorf("%w: consumer_key and consumer_secret must be set in %s", shared.ErrMissingCredentials, r.configFile())
	}

	session := r.client.Session()
	req, err := session.BeginAuthorization(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("oob") || rdio.CallbackURL == "" || rdio.CallbackURL == shared.OutOfBand {
		token, secret := session.PendingAuthorization()
		rdio.SetPending(token, secret)
		if err := r.saveConfig(); err != nil {
			return err
		}

		r.writePlain("Open this URL in your browser and approve access:\n\n%s\n\n", req.LoginURL)
		r.writePlain("Then run: rdx auth complete <verifier>\n")
		return nil
	}

	token, secret, err := r.doOAuth(ctx, req.LoginURL, req.Token, cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	rdio.Update(token, secret)
	if err := r.saveConfig(); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n", r.configFile())
	return nil
}

// AuthComplete exchanges the verifier from an out-of-band login for an access pair.
func (r *Runner) AuthComplete(ctx context.Context, cmd *cli.Command) error {
	rdio := &r.config.Credentials.Rdio
	if !rdio.HasPending() {
		return fmt.Errorf("%w: run 'rdx auth login --oob' first", shared.ErrNoRequestToken)
	}

	session := r.client.Session()
	session.ResumeAuthorization(rdio.RequestToken, rdio.RequestSecret)

	token, secret, err := session.CompleteAuthorization(ctx, cmd.Args().First())
	if err != nil {
		return err
	}

	rdio.Update(token, secret)
	if err := r.saveConfig(); err != nil {
		return err
	}

	r.writePlain("✓ Authorization successful\n")
	r.writePlain("✓ Tokens saved to %s\n", r.configFile())
	return nil
}

// AuthStatus reports the configured credentials and, when authorized, who they belong to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	rdio := r.config.Credentials.Rdio
	session := r.client.Session()

	if rdio.HasConsumer() {
		r.writePlain("Consumer key:  ✓ configured\n")
	} else {
		r.writePlain("Consumer key:  ✗ missing\n")
	}

	if rdio.HasPending() {
		r.writePlain("Pending login: waiting for 'rdx auth complete <verifier>'\n")
	}

	if !session.IsAuthenticated() {
		r.writePlain("Authorization: ✗ Not authorized\n")
		return nil
	}

	user, err := r.client.CurrentUser(ctx, nil)
	if err != nil {
		r.logger.Warn("access token was rejected", "error", err)
		r.writePlain("Authorization: ✗ Token rejected (%v)\n", err)
		return nil
	}

	name := "unknown user"
	if user != nil {
		name = fmt.Sprintf("%s (%s)", user.Name, user.Key)
	}
	r.writePlain("Authorization: ✓ Authorized as %s\n", name)
	return nil
}

// AuthLogout drops the saved access pair.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.config.Credentials.Rdio.Clear()
	r.config.Credentials.Rdio.SetPending("", "")
	r.client.Session().Logout()

	if err := r.saveConfig(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) saveConfig() error {
	if err := shared.SaveConfig(r.configFile(), r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// doOAuth serves the callback for requestToken, opens the login URL and waits for the access pair.
func (r *Runner) doOAuth(ctx context.Context, loginURL, requestToken string, timeout time.Duration) (token, secret string, err error) {
	handler := server.NewOAuthHandler(r.client.Session(), requestToken)
	srv := server.NewCallbackServer(r.config.Server.Addr(), handler, r.logger)
	if err := srv.Start(); err != nil {
		return "", "", err
	}
	defer srv.Shutdown()

	r.writePlain("→ Opening browser for authorization...\n")
	if err := r.openBrowser(loginURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
	}

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	r.writePlain("→ Waiting for authorization (%v timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := srv.Wait(waitCtx)
	if err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return "", "", fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, timeout)
		}
		return "", "", fmt.Errorf("authorization failed: %w", err)
	}
	if err := result.Error(); err != nil {
		return "", "", fmt.Errorf("authorization failed: %w", err)
	}
	return result.Token, result.Secret, nil
}
