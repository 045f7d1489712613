package customer

import "time"

type Customer struct {
	Principal     string
	Name          string
	PhoneNumber   string
	PickupAddress string
	CreatedAt     time.Time
}
