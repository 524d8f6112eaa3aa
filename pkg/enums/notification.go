package enums

import "fmt"

// NotificationType names the fact a notification was generated for.
type NotificationType string

const (
	NotificationTypeSubscriptionExpiry7Days NotificationType = "subscription_expiry_7days"
	NotificationTypeSubscriptionExpiry3Days NotificationType = "subscription_expiry_3days"
	NotificationTypeSubscriptionExpired     NotificationType = "subscription_expired"
	NotificationTypeSubscriptionCreated     NotificationType = "subscription_created"
	NotificationTypePaymentOverdue          NotificationType = "payment_overdue"
	NotificationTypePendingPayments         NotificationType = "pending_payments"
	NotificationTypePaymentReceived         NotificationType = "payment_received"
	NotificationTypeSeatsAvailable          NotificationType = "seats_available"
	NotificationTypeSeatBecameVacant        NotificationType = "seat_became_vacant"
	NotificationTypeHighOccupancy           NotificationType = "high_occupancy"
	NotificationTypeGrievanceNew            NotificationType = "grievance_new"
	NotificationTypeGrievanceOverdue        NotificationType = "grievance_overdue"
	NotificationTypeInventoryBroken         NotificationType = "inventory_broken"
	NotificationTypeInventoryLowStock       NotificationType = "inventory_low_stock"
	NotificationTypeSystemAnnouncement      NotificationType = "system_announcement"
	NotificationTypeSecurityAlert           NotificationType = "security_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSubscriptionExpiry7Days,
	NotificationTypeSubscriptionExpiry3Days,
	NotificationTypeSubscriptionExpired,
	NotificationTypeSubscriptionCreated,
	NotificationTypePaymentOverdue,
	NotificationTypePendingPayments,
	NotificationTypePaymentReceived,
	NotificationTypeSeatsAvailable,
	NotificationTypeSeatBecameVacant,
	NotificationTypeHighOccupancy,
	NotificationTypeGrievanceNew,
	NotificationTypeGrievanceOverdue,
	NotificationTypeInventoryBroken,
	NotificationTypeInventoryLowStock,
	NotificationTypeSystemAnnouncement,
	NotificationTypeSecurityAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationPriority ranks how urgently a notification should surface.
type NotificationPriority string

const (
	NotificationPriorityCritical NotificationPriority = "critical"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityLow      NotificationPriority = "low"
)

var validNotificationPriorities = []NotificationPriority{
	NotificationPriorityCritical,
	NotificationPriorityHigh,
	NotificationPriorityMedium,
	NotificationPriorityLow,
}

// IsValid reports whether the value is known.
func (p NotificationPriority) IsValid() bool {
	for _, candidate := range validNotificationPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseNotificationPriority converts raw strings into NotificationPriority.
func ParseNotificationPriority(value string) (NotificationPriority, error) {
	for _, candidate := range validNotificationPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification priority %q", value)
}

// NotificationCategory groups notifications for filtered listing.
type NotificationCategory string

const (
	NotificationCategorySubscription NotificationCategory = "subscription"
	NotificationCategoryPayment      NotificationCategory = "payment"
	NotificationCategorySeat         NotificationCategory = "seat"
	NotificationCategoryGrievance    NotificationCategory = "grievance"
	NotificationCategoryInventory    NotificationCategory = "inventory"
	NotificationCategoryMember       NotificationCategory = "member"
	NotificationCategorySystem       NotificationCategory = "system"
	NotificationCategorySecurity     NotificationCategory = "security"
	NotificationCategoryReport       NotificationCategory = "report"
	NotificationCategoryAccount      NotificationCategory = "account"
	NotificationCategorySettings     NotificationCategory = "settings"
)

var validNotificationCategories = []NotificationCategory{
	NotificationCategorySubscription,
	NotificationCategoryPayment,
	NotificationCategorySeat,
	NotificationCategoryGrievance,
	NotificationCategoryInventory,
	NotificationCategoryMember,
	NotificationCategorySystem,
	NotificationCategorySecurity,
	NotificationCategoryReport,
	NotificationCategoryAccount,
	NotificationCategorySettings,
}

// IsValid reports whether the value is known.
func (c NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseNotificationCategory converts raw strings into NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}
