package validators

import "go.mongodb.org/mongo-driver/bson"

var AssignmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "guard_id", "sub_status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"guard_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"sub_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending_checkin",
					"en_route",
					"on_site",
					"checked_out",
				},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var AuditEntryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "prior_status", "new_status", "timestamp"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"booking_id":   bson.M{"bsonType": "string"},
			"prior_status": bson.M{"bsonType": "string"},
			"new_status":   bson.M{"bsonType": "string"},
			"actor_id":     bson.M{"bsonType": "string"},
			"timestamp":    bson.M{"bsonType": "date"},
		},
	},
}
