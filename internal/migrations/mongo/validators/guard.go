package validators

import "go.mongodb.org/mongo-driver/bson"

var GuardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"company_id", "full_name", "phone", "city", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"company_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"full_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"phone": bson.M{"bsonType": "string"},
			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 60,
			},
			"armed_license": bson.M{"bsonType": "bool"},
			"rating": bson.M{
				"bsonType": "double",
				"minimum":  0,
				"maximum":  5,
			},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var CompanyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "cities", "contact_phone", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"cities": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 50,
				"items":    bson.M{"bsonType": "string"},
			},
			"contact_phone": bson.M{"bsonType": "string"},
			"priority": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},
			"active":     bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
