package models

// CustomerInfo identifies the account holder.
type CustomerInfo struct {
	Name       string `json:"name,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	Address    string `json:"address,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PAN        string `json:"pan,omitempty"`
}

// AccountSummary holds the scalar account fields scattered around a statement.
type AccountSummary struct {
	AccountNumber    string  `json:"accountNumber,omitempty"`
	AccountType      string  `json:"accountType,omitempty"`
	Branch           string  `json:"branch,omitempty"`
	IFSC             string  `json:"ifsc,omitempty"`
	MICR             string  `json:"micr,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	StatementPeriod  string  `json:"statementPeriod,omitempty"`
	OpeningBalance   float64 `json:"openingBalance,omitempty"`
	ClosingBalance   float64 `json:"closingBalance,omitempty"`
	TotalDeposits    float64 `json:"totalDeposits,omitempty"`
	TotalWithdrawals float64 `json:"totalWithdrawals,omitempty"`
}

// AccountDetail is one row of an account-details table (linked accounts).
type AccountDetail struct {
	AccountType   string  `json:"accountType,omitempty"`
	AccountNumber string  `json:"accountNumber"`
	Currency      string  `json:"currency,omitempty"`
	Balance       float64 `json:"balance"`
	Nominee       string  `json:"nominee,omitempty"`
}

// FixedDeposit is a time-locked deposit listed in its own statement section.
type FixedDeposit struct {
	DepositNumber  string  `json:"depositNumber"`
	OpenDate       string  `json:"openDate,omitempty"`
	Principal      float64 `json:"principal"`
	InterestRate   float64 `json:"interestRate,omitempty"`
	MaturityDate   string  `json:"maturityDate,omitempty"`
	MaturityAmount float64 `json:"maturityAmount,omitempty"`
}

// RewardPoint is one row of a reward-points section.
type RewardPoint struct {
	Program  string  `json:"program"`
	Opening  float64 `json:"opening"`
	Earned   float64 `json:"earned"`
	Redeemed float64 `json:"redeemed"`
	Closing  float64 `json:"closing"`
}

// AccountInfo is a labeled account attribute that has no dedicated field.
type AccountInfo struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ParsedBankStatement is the aggregate produced by one extraction call.
type ParsedBankStatement struct {
	Bank           string            `json:"bank"`
	CustomerInfo   CustomerInfo      `json:"customerInfo"`
	AccountSummary AccountSummary    `json:"accountSummary"`
	AccountDetails []AccountDetail   `json:"accountDetails"`
	FixedDeposits  []FixedDeposit    `json:"fixedDeposits"`
	Transactions   []BankTransaction `json:"transactions"`
	RewardPoints   []RewardPoint     `json:"rewardPoints"`
	AccountInfo    []AccountInfo     `json:"accountInfo"`
	Metadata       StatementMetadata `json:"metadata"`
}

// HasIdentity reports whether any identifying scalar was extracted.
func (s *ParsedBankStatement) HasIdentity() bool {
	return s.CustomerInfo.Name != "" ||
		s.CustomerInfo.CustomerID != "" ||
		s.AccountSummary.AccountNumber != "" ||
		s.AccountSummary.IFSC != ""
}
