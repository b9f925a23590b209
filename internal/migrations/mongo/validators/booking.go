package validators

import "go.mongodb.org/mongo-driver/bson"

var guestProperties = bson.M{
	"name": bson.M{
		"bsonType":  "string",
		"minLength": 1,
		"maxLength": 200,
	},
	"dob": bson.M{
		"bsonType": "date",
	},
	"govt_id_type": bson.M{
		"bsonType": "string",
		"enum": []string{
			"Aadhar",
			"DrivingLicense",
			"Passport",
		},
	},
	"govt_id_number": bson.M{
		"bsonType":  "string",
		"minLength": 6,
		"maxLength": 20,
	},
}

var guestRequired = []string{"name", "dob", "govt_id_type", "govt_id_number"}

func withEmail(props bson.M) bson.M {
	out := bson.M{"email": bson.M{"bsonType": "string", "minLength": 3, "maxLength": 320}}
	for k, v := range props {
		out[k] = v
	}
	return out
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"primary_guest",
			"guest_count",
			"child_count",
			"additional_guests",
			"check_in_date",
			"check_out_date",
			"cancelled",
			"submitted_at",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"primary_guest": bson.M{
				"bsonType":   "object",
				"required":   append([]string{"email"}, guestRequired...),
				"properties": withEmail(guestProperties),
			},

			"guest_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"child_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"relationship_type": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"additional_guests": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":   "object",
					"required":   guestRequired,
					"properties": guestProperties,
				},
			},

			"check_in_date": bson.M{
				"bsonType": "date",
			},

			"check_out_date": bson.M{
				"bsonType": "date",
			},

			"cancelled": bson.M{
				"bsonType": "bool",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"submitted_at": bson.M{
				"bsonType": "date",
			},

			"origin_ip": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}

var UnitLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "sequence"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"sequence": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
