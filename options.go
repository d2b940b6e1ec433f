package postip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/afs"
	"github.com/viant/postip/auth/flow"
	"github.com/viant/postip/internal/fault"
	"github.com/viant/postip/oracle"
	"github.com/viant/postip/reconcile"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval     = 60 * time.Minute
	DefaultRecoveryInterval = 10 * time.Minute
)

// Options defines agent options, settable by flags or a YAML file.
type Options struct {
	Verbose            []bool        `yaml:"-" json:"-" short:"v" long:"verbose" description:"increase log verbosity, repeatable"`
	CredentialsCommand string        `yaml:"credentialsCommand,omitempty" json:"credentialsCommand,omitempty" short:"c" long:"credentials-command" description:"command printing client credentials JSON"`
	EncryptionKey      string        `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty" short:"k" long:"key" description:"encryption key of a scy encrypted credentials file"`
	Flow               string        `yaml:"flow,omitempty" json:"flow,omitempty" short:"f" long:"flow" description:"authorization flow" choice:"browser" choice:"device"`
	ConfigURL          string        `yaml:"-" json:"-" long:"config" description:"YAML options file"`
	PollInterval       time.Duration `yaml:"pollInterval,omitempty" json:"pollInterval,omitempty" long:"poll-interval" description:"delay between checks"`
	RecoveryInterval   time.Duration `yaml:"recoveryInterval,omitempty" json:"recoveryInterval,omitempty" long:"recovery-interval" description:"delay after a failed check"`
	RetryDelay         time.Duration `yaml:"retryDelay,omitempty" json:"retryDelay,omitempty" long:"retry-delay" description:"delay between address service attempts"`
	OracleURL          string        `yaml:"oracleURL,omitempty" json:"oracleURL,omitempty" long:"oracle-url" description:"address service URL"`
	RecordName         string        `yaml:"recordName,omitempty" json:"recordName,omitempty" long:"record-name" description:"drive file name"`
}

// Init applies defaults.
func (o *Options) Init() {
	if o.Flow == "" {
		o.Flow = flow.KindBrowser
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RecoveryInterval <= 0 {
		o.RecoveryInterval = DefaultRecoveryInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = oracle.DefaultRetryDelay
	}
	if o.OracleURL == "" {
		o.OracleURL = oracle.DefaultURL
	}
	if o.RecordName == "" {
		o.RecordName = reconcile.DefaultRecordName
	}
}

// Level maps the verbosity count to a log level.
func (o *Options) Level() slog.Level {
	switch len(o.Verbose) {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Load fills options not set yet from the YAML file at ConfigURL, if any.
func (o *Options) Load(ctx context.Context, fs afs.Service) error {
	if o.ConfigURL == "" {
		return nil
	}
	data, err := fs.DownloadWithURL(ctx, o.ConfigURL)
	if err != nil {
		return fault.WrapConfig(err, fmt.Sprintf("failed to read config %v", o.ConfigURL))
	}
	file := &Options{}
	if err = yaml.Unmarshal(data, file); err != nil {
		return fault.WrapConfig(err, fmt.Sprintf("failed to decode config %v", o.ConfigURL))
	}
	o.merge(file)
	return nil
}

func (o *Options) merge(file *Options) {
	if o.CredentialsCommand == "" {
		o.CredentialsCommand = file.CredentialsCommand
	}
	if o.EncryptionKey == "" {
		o.EncryptionKey = file.EncryptionKey
	}
	if o.Flow == "" {
		o.Flow = file.Flow
	}
	if o.PollInterval == 0 {
		o.PollInterval = file.PollInterval
	}
	if o.RecoveryInterval == 0 {
		o.RecoveryInterval = file.RecoveryInterval
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = file.RetryDelay
	}
	if o.OracleURL == "" {
		o.OracleURL = file.OracleURL
	}
	if o.RecordName == "" {
		o.RecordName = file.RecordName
	}
}
