// Package endpoint describes the remote Solr servers a client talks to.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/validation"
)

const (
	defaultScheme  = "http"
	defaultHost    = "127.0.0.1"
	defaultPort    = 8983
	defaultContext = "solr"
)

// Authentication holds HTTP Basic credentials.
type Authentication struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// IsSet reports whether both username and password are non-empty.
func (a Authentication) IsSet() bool {
	return a.Username != "" && a.Password != ""
}

// AuthorizationToken is sent as "Authorization: <TokenName> <Token>".
type AuthorizationToken struct {
	TokenName string `yaml:"tokenname" mapstructure:"tokenname"`
	Token     string `yaml:"token" mapstructure:"token"`
}

// IsSet reports whether both the token name and the token are non-empty.
func (t AuthorizationToken) IsSet() bool {
	return t.TokenName != "" && t.Token != ""
}

// Header returns the Authorization header value.
func (t AuthorizationToken) Header() string {
	return t.TokenName + " " + t.Token
}

// Config is the configuration form of an Endpoint.
type Config struct {
	Scheme             string             `yaml:"scheme" mapstructure:"scheme" validate:"oneof=http https"`
	Host               string             `yaml:"host" mapstructure:"host" validate:"required"`
	Port               int                `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	Path               string             `yaml:"path" mapstructure:"path"`
	Context            string             `yaml:"context" mapstructure:"context"`
	Core               string             `yaml:"core" mapstructure:"core"`
	Collection         string             `yaml:"collection" mapstructure:"collection"`
	Leader             bool               `yaml:"leader" mapstructure:"leader"`
	Authentication     Authentication     `yaml:"authentication" mapstructure:"authentication"`
	AuthorizationToken AuthorizationToken `yaml:"authorization_token" mapstructure:"authorization_token"`
}

// ApplyDefaults fills in zero-value fields with Solr's defaults.
func (c *Config) ApplyDefaults() {
	if c.Scheme == "" {
		c.Scheme = defaultScheme
	}
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Context == "" {
		c.Context = defaultContext
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Endpoint is a single Solr server, optionally bound to a core or collection.
type Endpoint struct {
	key                string
	scheme             string
	host               string
	port               int
	path               string
	context            string
	core               string
	collection         string
	leader             bool
	authentication     Authentication
	authorizationToken AuthorizationToken
}

// New creates an endpoint from cfg after applying defaults and validating it.
func New(key string, cfg Config) (*Endpoint, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Endpoint{
		key:                key,
		scheme:             cfg.Scheme,
		host:               cfg.Host,
		port:               cfg.Port,
		context:            cfg.Context,
		core:               cfg.Core,
		collection:         cfg.Collection,
		leader:             cfg.Leader,
		authentication:     cfg.Authentication,
		authorizationToken: cfg.AuthorizationToken,
	}
	e.SetPath(cfg.Path)
	return e, nil
}

// Default returns an endpoint for a local Solr on the default port.
func Default(key string) *Endpoint {
	e, _ := New(key, Config{})
	return e
}

// Key returns the name the endpoint is registered under.
func (e *Endpoint) Key() string { return e.key }

// SetKey renames the endpoint.
func (e *Endpoint) SetKey(key string) { e.key = key }

// Scheme returns the URL scheme.
func (e *Endpoint) Scheme() string { return e.scheme }

// Host returns the host name or address.
func (e *Endpoint) Host() string { return e.host }

// Port returns the TCP port.
func (e *Endpoint) Port() int { return e.port }

// Path returns the path prefix without a trailing slash.
func (e *Endpoint) Path() string { return e.path }

// SetPath sets the path prefix; a trailing slash is removed.
func (e *Endpoint) SetPath(path string) {
	e.path = strings.TrimSuffix(path, "/")
}

// Context returns the Solr webapp context (usually "solr").
func (e *Endpoint) Context() string { return e.context }

// Core returns the bound core, if any.
func (e *Endpoint) Core() string { return e.core }

// SetCore binds the endpoint to a core.
func (e *Endpoint) SetCore(core string) { e.core = core }

// Collection returns the bound collection, if any.
func (e *Endpoint) Collection() string { return e.collection }

// SetCollection binds the endpoint to a collection.
func (e *Endpoint) SetCollection(collection string) { e.collection = collection }

// Leader reports whether the endpoint is a SolrCloud shard leader.
func (e *Endpoint) Leader() bool { return e.leader }

// SetLeader marks the endpoint as a shard leader.
func (e *Endpoint) SetLeader(leader bool) { e.leader = leader }

// SetAuthentication sets HTTP Basic credentials.
func (e *Endpoint) SetAuthentication(username, password string) {
	e.authentication = Authentication{Username: username, Password: password}
}

// GetAuthentication returns the HTTP Basic credentials.
func (e *Endpoint) GetAuthentication() Authentication { return e.authentication }

// SetAuthorizationToken sets the token sent in the Authorization header.
func (e *Endpoint) SetAuthorizationToken(tokenName, token string) {
	e.authorizationToken = AuthorizationToken{TokenName: tokenName, Token: token}
}

// GetAuthorizationToken returns the authorization token.
func (e *Endpoint) GetAuthorizationToken() AuthorizationToken { return e.authorizationToken }

// ServerURI returns scheme://host:port/path/.
func (e *Endpoint) ServerURI() string {
	return e.scheme + "://" + e.host + ":" + strconv.Itoa(e.port) + e.path + "/"
}

// CoreBaseURI returns the base URI for requests to the bound core.
func (e *Endpoint) CoreBaseURI() (string, error) {
	if e.core == "" {
		return "", errors.UnexpectedValue("No core set.")
	}
	return e.V1BaseURI() + e.core + "/", nil
}

// CollectionBaseURI returns the base URI for requests to the bound collection.
func (e *Endpoint) CollectionBaseURI() (string, error) {
	if e.collection == "" {
		return "", errors.UnexpectedValue("No collection set.")
	}
	return e.V1BaseURI() + e.collection + "/", nil
}

// BaseURI returns the collection base URI when a collection is set, else the
// core base URI.
func (e *Endpoint) BaseURI() (string, error) {
	switch {
	case e.collection != "":
		return e.CollectionBaseURI()
	case e.core != "":
		return e.CoreBaseURI()
	default:
		return "", errors.UnexpectedValue("Neither collection nor core set.")
	}
}

// V1BaseURI returns the base URI of the v1 API (server + context).
func (e *Endpoint) V1BaseURI() string {
	return e.ServerURI() + e.context + "/"
}

// V2BaseURI returns the base URI of the v2 API.
func (e *Endpoint) V2BaseURI() string {
	return e.ServerURI() + "api/"
}

// String describes the endpoint with credentials masked.
func (e *Endpoint) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.key, e.ServerURI())
	if e.collection != "" {
		fmt.Fprintf(&b, " collection=%s", e.collection)
	} else if e.core != "" {
		fmt.Fprintf(&b, " core=%s", e.core)
	}
	if e.authentication.Username != "" {
		fmt.Fprintf(&b, " user=%s password=%s", e.authentication.Username,
			logger.MaskSecret(e.authentication.Password, 0))
	}
	if e.authorizationToken.IsSet() {
		fmt.Fprintf(&b, " token=%s %s", e.authorizationToken.TokenName,
			logger.MaskSecret(e.authorizationToken.Token, 4))
	}
	return b.String()
}
