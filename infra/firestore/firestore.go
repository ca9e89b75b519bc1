package firestore

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

func SetupFirestore(ctx *pulumi.Context, prov *gcp.Provider) error {
	svc, err := enableFirestore(ctx, prov)
	if err != nil {
		return err
	}

	if err := createDatabase(ctx, prov, svc); err != nil {
		return err
	}

	if err := createIndexes(ctx, prov, svc); err != nil {
		return err
	}

	return nil
}

func enableFirestore(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "firestore", &projects.ServiceArgs{
		Service: pulumi.String("firestore.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}

func createDatabase(ctx *pulumi.Context, prov *gcp.Provider, res ...pulumi.Resource) error {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	_, err := firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Project:    pulumi.String(projectID),
		LocationId: pulumi.String(region),
		Type:       pulumi.String("FIRESTORE_NATIVE"),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
	return err
}

// createIndexes declares the composite indexes the feed and assessor queries
// need. Firestore serves single-field queries without these.
func createIndexes(ctx *pulumi.Context, prov *gcp.Provider, res ...pulumi.Resource) error {
	indexes := []struct {
		name   string
		fields []indexField
	}{
		// explore feed: filter by status, newest first
		{"predictionsByStatusCreated", []indexField{
			{"status", "ASCENDING"},
			{"createdAt", "DESCENDING"},
		}},
		// assessor sweep: active predictions past their deadline
		{"predictionsByStatusDeadline", []indexField{
			{"status", "ASCENDING"},
			{"deadline", "ASCENDING"},
		}},
		// per-ticker reads
		{"predictionsByTickerStatus", []indexField{
			{"ticker", "ASCENDING"},
			{"status", "ASCENDING"},
			{"createdAt", "DESCENDING"},
		}},
	}

	for _, idx := range indexes {
		fields := firestore.IndexFieldArray{}
		for _, f := range idx.fields {
			fields = append(fields, &firestore.IndexFieldArgs{
				FieldPath: pulumi.String(f.path),
				Order:     pulumi.String(f.order),
			})
		}

		_, err := firestore.NewIndex(ctx, idx.name, &firestore.IndexArgs{
			Collection: pulumi.String("predictions"),
			Fields:     fields,
		},
			pulumi.Provider(prov),
			pulumi.DependsOn(res),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

type indexField struct {
	path  string
	order string
}
