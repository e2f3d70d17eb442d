package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// OAuth runs the GitHub web application flow.
type OAuth struct {
	cfg   *oauth2.Config
	state core.StateCodec
}

type OAuthOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Zero value means github.com
	Endpoint oauth2.Endpoint
}

func NewOAuth(opts OAuthOptions, state core.StateCodec) *OAuth {
	endpoint := opts.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = githuboauth.Endpoint
	}
	// GitHub accepts credentials in the body, skip the auth style probe.
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       opts.Scopes,
			Endpoint:     endpoint,
		},
		state: state,
	}
}

// AuthURL returns the authorize URL for a login started from messageID.
func (o *OAuth) AuthURL(userID int64, messageID int) (string, error) {
	state, err := o.state.Encode(userID, messageID)
	if err != nil {
		return "", err
	}
	return o.cfg.AuthCodeURL(state), nil
}

// Exchange trades the authorization code for an access token. An empty
// token is an error.
func (o *OAuth) Exchange(ctx context.Context, code, state string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: empty code", core.ErrAuth)
	}

	tok, err := o.cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("state", state))
	if err != nil {
		return "", errors.Join(core.ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", core.ErrAuth)
	}
	return tok.AccessToken, nil
}
