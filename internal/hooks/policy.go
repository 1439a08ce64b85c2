package hooks

// Policy decides what a non-zero hook exit means for the caller
type Policy int

const (
	// PolicyFail fails the caller's operation
	PolicyFail Policy = iota
	// PolicyLog logs the failure and carries on
	PolicyLog
	// PolicyAbortTransaction aborts the reference transaction being prepared
	PolicyAbortTransaction
)

var policies = map[string]Policy{
	"pre-commit":            PolicyFail,
	"commit-msg":            PolicyFail,
	"pre-rebase":            PolicyFail,
	"post-commit":           PolicyLog,
	"post-rewrite":          PolicyLog,
	"post-checkout":         PolicyLog,
	"reference-transaction": PolicyAbortTransaction,
}

// PolicyFor returns the policy of hook name. Unknown hooks fail.
func PolicyFor(name string) Policy {
	if p, ok := policies[name]; ok {
		return p
	}
	return PolicyFail
}

func (p Policy) String() string {
	switch p {
	case PolicyLog:
		return "log"
	case PolicyAbortTransaction:
		return "abort-transaction"
	default:
		return "fail"
	}
}
