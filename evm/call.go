package evm

// CallKind identifies the flavor of a message: a top-level or nested call,
// and the two contract-creation forms.
type CallKind int

const (
	Call CallKind = iota
	StaticCall
	DelegateCall
	CallCode
	Create
	Create2
)

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case StaticCall:
		return "static_call"
	case DelegateCall:
		return "delegate_call"
	case CallCode:
		return "call_code"
	case Create:
		return "create"
	case Create2:
		return "create2"
	default:
		return "unknown"
	}
}

// Parameters is the top-level message an Execute invocation runs.
type Parameters struct {
	Revision  Revision
	Kind      CallKind
	Static    bool
	Depth     int
	Gas       int64
	Recipient Address
	Sender    Address
	Value     Value
	Input     []byte
	CodeHash  Hash
	Code      Code
	Salt      Word // only meaningful for Create2

	Context Host
}

// CallParameters is the message passed to Host.Call for a nested
// call/create.
type CallParameters struct {
	Kind        CallKind
	Sender      Address
	Recipient   Address
	CodeAddress Address // the address code is read from (differs from
	// Recipient for CallCode/DelegateCall)
	Value Value
	Input []byte
	Gas   int64
	Salt  Word // only meaningful for Create2
}

// CallResult is the outcome of a nested call/create dispatched through
// Host.Call.
type CallResult struct {
	Success        bool
	Output         []byte
	GasLeft        int64
	GasRefund      int64
	CreatedAddress Address
}

// Result is the outcome of a top-level Execute invocation.
type Result struct {
	Status    StatusCode
	GasLeft   int64
	GasRefund int64
	Output    []byte
}

// Log is a single event emitted by the LOG0..LOG4 family.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}
