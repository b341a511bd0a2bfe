/*
Package storagemodels defines the low-level query parameters shared by the
DynamoDB store and its GSI query builder.

	params := &QueryParams{
	    TableName:              "events",
	    KeyConditionExpression: "#pk = :pk",
	    ExpressionAttributeNames: map[string]string{"#pk": "GSI1PK"},
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "ORG#65f0c0ffee0000000000abcd"},
	    },
	    IndexName: aws.String("GSI1"),
	    Limit:     aws.Int32(100),
	}
*/
package storagemodels
