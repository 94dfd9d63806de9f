package models

import "time"

type LoginLog struct {
	ID            int        `json:"id"`
	PrincipalType string     `json:"principal_type"`
	PrincipalID   int        `json:"principal_id"`
	LoginTime     time.Time  `json:"login_time"`
	LogoutTime    *time.Time `json:"logout_time,omitempty"`
	IPAddress     string     `json:"ip_address,omitempty"`
	UserAgent     string     `json:"user_agent,omitempty"`
}
