package domain

// Row is a flattened, tabular view of one record keyed by column name
type Row map[string]string

// Project returns the row values in header order, substituting "" for
// columns the row does not carry.
func (r Row) Project(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = r[h]
	}
	return out
}

// Full export columns, in file order
const (
	ColSendDemoUUID            = "senddemoUuid"
	ColDemoboardName           = "demoboardName"
	ColOrganization            = "organization"
	ColViewTime                = "viewTime"
	ColTimeLastView            = "timeLastView"
	ColExternalAccountID       = "externalAccountId"
	ColExternalOpportunityID   = "externalOpportunityId"
	ColExternalAccountName     = "externalAccountName"
	ColExternalOpportunityName = "externalOpportunityName"
	ColDemoUUIDs               = "demoUuids"
)

// Summary export columns, in file order
const (
	SumDemoboardID     = "Demoboard_ID"
	SumDemoIDs         = "Demo_IDs"
	SumAccountID       = "Salesforce_External_AccountId"
	SumOpportunityID   = "Salesforce_External_OppId"
	SumViewTimeSeconds = "View_Time_Seconds"
	SumDemoboardViewed = "Demoboard_View_Date"
)

// FullColumns returns the declared header of the full export
func FullColumns() []string {
	return []string{
		ColSendDemoUUID,
		ColDemoboardName,
		ColOrganization,
		ColViewTime,
		ColTimeLastView,
		ColExternalAccountID,
		ColExternalOpportunityID,
		ColExternalAccountName,
		ColExternalOpportunityName,
		ColDemoUUIDs,
	}
}

// SummaryColumns returns the declared header of the summary export
func SummaryColumns() []string {
	return []string{
		SumDemoboardID,
		SumDemoIDs,
		SumAccountID,
		SumOpportunityID,
		SumViewTimeSeconds,
		SumDemoboardViewed,
	}
}

// SummaryMapping maps each summary column to the full column it is taken from
func SummaryMapping() map[string]string {
	return map[string]string{
		SumDemoboardID:     ColSendDemoUUID,
		SumDemoIDs:         ColDemoUUIDs,
		SumAccountID:       ColExternalAccountID,
		SumOpportunityID:   ColExternalOpportunityID,
		SumViewTimeSeconds: ColViewTime,
		SumDemoboardViewed: ColTimeLastView,
	}
}
