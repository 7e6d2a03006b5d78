package validators

type ProposeNegotiationBody struct {
	ProposedFare string `json:"proposed_fare" validate:"required"`
}

type RespondNegotiationBody struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}
