package utility

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"content_studio/internal/common"
)

// String2ObjectID chuyển đổi chuỗi thành ObjectID, chuỗi sai định dạng trả về NilObjectID
func String2ObjectID(id string) primitive.ObjectID {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objectId
}

// ParseObjectID giống String2ObjectID nhưng trả về ValidationError khi sai định dạng
func ParseObjectID(field, id string) (primitive.ObjectID, error) {
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.NewValidationError(
			field+" không đúng định dạng ObjectID (chuỗi hex 24 ký tự)",
			map[string]string{"field": field, "value": id},
		)
	}
	return objectId, nil
}

// StringArray2ObjectIDArray chuyển đổi mảng chuỗi thành mảng ObjectID, dừng ở phần tử sai đầu tiên
func StringArray2ObjectIDArray(field string, ids []string) ([]primitive.ObjectID, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := ParseObjectID(field, id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, oid)
	}
	return objectIDs, nil
}
