package pairing

// Outcome is the result of a non-interactive pairing attempt: PinRequired
// or Paired.
type Outcome interface {
	outcome()
}

// PinRequired reports that the handshake needs a PIN from the user before
// it can finish.
type PinRequired struct {
	Status     string `json:"status"`
	Identifier string `json:"identifier"`
	Protocol   string `json:"protocol"`
	Message    string `json:"message"`
}

// Paired reports a completed handshake.
type Paired struct {
	Status           string `json:"status"`
	Identifier       string `json:"identifier"`
	Protocol         string `json:"protocol"`
	CredentialsSaved bool   `json:"credentials_saved"`
	Credentials      string `json:"credentials"`
}

func (*PinRequired) outcome() {}
func (*Paired) outcome()      {}

// Unpaired reports the result of removing stored credentials. Status is
// "unpaired" when something was removed and "noop" otherwise.
type Unpaired struct {
	Status             string `json:"status"`
	Identifier         string `json:"identifier"`
	Protocol           string `json:"protocol"`
	CredentialsRemoved bool   `json:"credentials_removed"`
}

const (
	statusPinRequired = "pin_required"
	statusPaired      = "paired"
	statusUnpaired    = "unpaired"
	statusNoop        = "noop"
)
