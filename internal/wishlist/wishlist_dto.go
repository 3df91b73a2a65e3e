package wishlist

import "go-course-client/internal/gateway"

type addRequest struct {
	CourseID string `json:"course_id"`
}

type listItem struct {
	CourseID string `json:"course_id"`
}

type listResponse struct {
	gateway.ListMeta
	Items []listItem `json:"items"`
}
