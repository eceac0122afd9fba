package email

import "fmt"

// CampaignCityCode derives the short city code shown in notification subjects.
// Campaign names carry a two-character suffix that is stripped when present.
func CampaignCityCode(campaign string) string {
	if len(campaign) > 2 {
		return campaign[:len(campaign)-2]
	}
	return campaign
}

// LeadNotificationSubject formats the alert subject as "<name> - <citycode>".
func LeadNotificationSubject(n Notification) string {
	return fmt.Sprintf("%s %s - %s", n.FirstName, n.LastName, CampaignCityCode(n.Campaign))
}
