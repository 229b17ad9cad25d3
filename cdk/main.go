package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type PadelStackProps struct {
	awscdk.StackProps
}

func NewPadelStack(scope constructs.Construct, id string, props *PadelStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	// Postgres is provisioned outside the stack; the function only needs the DSN.
	lambdaFn := awslambda.NewFunction(stack, jsii.String("PadelApi"), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(15)),
		MemorySize:   jsii.Number(256),
		Environment: &map[string]*string{
			"APP":                jsii.String("prod"),
			"LOG_LEVEL":          jsii.String(envOr("LOG_LEVEL", "info")),
			"POSTGRES_DSN":       jsii.String(os.Getenv("POSTGRES_DSN")),
			"POSTGRES_MAX_CONNS": jsii.String(envOr("POSTGRES_MAX_CONNS", "2")),
			"ADMIN_KEY_HASH":     jsii.String(os.Getenv("ADMIN_KEY_HASH")),
			"CORS_ALLOW_ORIGINS": jsii.String(os.Getenv("CORS_ALLOW_ORIGINS")),
			"DEFAULT_NUM_SETS":   jsii.String(envOr("DEFAULT_NUM_SETS", "3")),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("PadelApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	app := awscdk.NewApp(nil)
	NewPadelStack(app, "PadelStack", &PadelStackProps{})
	app.Synth(nil)
}
