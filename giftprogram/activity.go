package giftprogram

// Activity - Metadata of one submitted operation, as handed to the recorder
type Activity struct {
	Owner     string
	CardID    uint64
	Operation string // create, redeem, refund, rule_set, delete, send
	Merchant  string
	Amount    uint64
}

// ActivityRecorder - Optional sink for submitted transactions and their
// outcomes. Recording failures are the implementation's to log; they never
// fail the operation itself.
type ActivityRecorder interface {
	OperationSubmitted(activity Activity, signature string)
	OperationResolved(signature string, status TransactionStatus, errorMessage string)
}

// SetActivityRecorder - Attach a recorder that will see every transaction
// this client submits
func (c *Client) SetActivityRecorder(recorder ActivityRecorder) {
	c.recorder = recorder
}

func (c *Client) notifySubmitted(activity Activity, signature string) {
	if c.recorder != nil {
		c.recorder.OperationSubmitted(activity, signature)
	}
}

func (c *Client) notifyResolved(signature string, status TransactionStatus, errorMessage string) {
	if c.recorder != nil {
		c.recorder.OperationResolved(signature, status, errorMessage)
	}
}
